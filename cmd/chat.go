package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conecta-senac/aprendiz/internal/chat"
	"github.com/conecta-senac/aprendiz/internal/model"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Conversa interativa no terminal",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.close()

	session := app.sessions.Get("")
	fmt.Printf("[%s] %s\n", model.EmotionFeliz, chat.Greeting)
	fmt.Println("(/limpar reinicia a conversa, /web liga/desliga a busca, /sair encerra)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		switch text {
		case "/sair":
			return nil
		case "/limpar":
			session.Reset()
			fmt.Printf("[%s] %s\n", model.EmotionFeliz, chat.ClearedGreeting)
			continue
		case "/web":
			session.SetWebSearch(!session.WebSearch)
			if session.WebSearch {
				fmt.Println("Busca web ligada.")
			} else {
				fmt.Println("Busca web desligada.")
			}
			continue
		}

		payload, sources := app.responder.Respond(ctx, session, text)
		app.saveTurn(ctx, session.ID, "user", text, "", nil)
		app.saveTurn(ctx, session.ID, "bot", payload.Content, payload.Emotion, sources)

		fmt.Printf("[%s] %s\n", payload.Emotion, payload.Content)
		for i, h := range sources {
			fmt.Printf("  [%d] %s — %s\n", i+1, h.Title, h.URL)
		}
	}
	return scanner.Err()
}
