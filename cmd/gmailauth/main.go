// Command gmailauth runs the one-time OAuth consent for the Gmail status
// sync and saves the token file the API server reads.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/justsurfingit/jobtracker/internal/auth"
	"github.com/justsurfingit/jobtracker/internal/config"
	"github.com/justsurfingit/jobtracker/internal/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.App.Env)

	oauthCfg, err := auth.GmailConfig(cfg.Mail.CredentialsFile)
	if err != nil {
		logger.Fatal("Unable to load Gmail credentials", "error", err)
	}

	fmt.Printf("\n---------------------------------------------------------\n")
	fmt.Printf("OPEN THIS LINK TO AUTHORIZE GMAIL ACCESS:\n%v\n", auth.AuthURL(oauthCfg))
	fmt.Printf("---------------------------------------------------------\n")
	fmt.Printf("Paste the code here: ")

	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && code == "" {
		logger.Fatal("Unable to read authorization code", "error", err)
	}

	tok, err := auth.ExchangeCode(context.Background(), oauthCfg, strings.TrimSpace(code))
	if err != nil {
		logger.Fatal("Token exchange failed", "error", err)
	}
	if err := auth.SaveToken(cfg.Mail.TokenFile, tok); err != nil {
		logger.Fatal("Unable to save token", "error", err)
	}
	fmt.Printf("Saved token to %s\n", cfg.Mail.TokenFile)
}
