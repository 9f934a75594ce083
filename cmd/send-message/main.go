package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/DevRickLin/slack-tone-bot/internal/data"
)

// send-message posts one ephemeral message, handy for checking the bot token and channel membership.
func main() {
	_ = godotenv.Load()

	token := os.Getenv("SLACK_BOT_TOKEN")
	if token == "" {
		fmt.Println("Error: SLACK_BOT_TOKEN must be set")
		os.Exit(1)
	}

	if len(os.Args) < 4 {
		fmt.Println("Usage: send-message <channel_id> <user_id> <message>")
		os.Exit(1)
	}

	channelID := os.Args[1]
	userID := os.Args[2]
	message := os.Args[3]

	chat := data.NewSlackRepo(data.NewSlackClient(token, os.Getenv("SLACK_API_URL")))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := chat.PostEphemeral(ctx, channelID, userID, message); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Message sent successfully!")
}
