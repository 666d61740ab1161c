// Command chat-cli is a small interactive terminal client for the fastrag
// backend. It keeps one session for the run; /history prints the transcript.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"fastrag/pkg/client"
)

func main() {
	baseURL := flag.String("url", "http://127.0.0.1:8000", "backend base URL")
	provider := flag.String("provider", "claude", "llm provider (claude, openai, gemini)")
	model := flag.String("model", "claude-3-5-sonnet-20240620", "model identifier")
	temperature := flag.Float64("temperature", 0.3, "sampling temperature (0..1)")
	maxTokens := flag.Int("max-tokens", 1024, "maximum tokens to generate")
	rag := flag.Bool("rag", false, "augment prompts with stored notes")
	flag.Parse()

	c := client.New(*baseURL)
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "backend not reachable at %s: %v\n", *baseURL, err)
		os.Exit(1)
	}

	sessionID := client.NewSessionID()
	fmt.Printf("Connected to %s (session %s). Type a question, /history, or /quit.\n", *baseURL, sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return
		case "/history":
			for _, msg := range c.ChatHistory(ctx, sessionID) {
				fmt.Printf("[%s] %s\n", msg.Role, msg.Message)
			}
			continue
		}

		err := c.GenerateStream(ctx, client.GenerateRequest{
			Question:    line,
			LLMProvider: *provider,
			LLMModel:    *model,
			Temperature: *temperature,
			MaxTokens:   *maxTokens,
			SessionID:   sessionID,
			RAGEnabled:  *rag,
		}, func(fragment string) error {
			fmt.Print(fragment)
			return nil
		})
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "input error: %v\n", err)
		os.Exit(1)
	}
}
