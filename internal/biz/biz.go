package biz

import (
	"github.com/DevRickLin/slack-tone-bot/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Tone       *usecase.ToneUsecase
	Preference *usecase.PreferenceUsecase
}
