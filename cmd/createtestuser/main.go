// Command createtestuser creates a pre-verified test user on the platform,
// bypassing email confirmation and its rate limits, and prints the
// credentials to log in with.
//
// Failures are reported but do not change the exit status.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/patric-chuzhbe/lmkadmin/internal/app"
	"github.com/patric-chuzhbe/lmkadmin/internal/logger"
	"github.com/patric-chuzhbe/lmkadmin/internal/models"
)

func printBanner(w io.Writer, account *models.TestAccount) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "TEST ACCOUNT READY!")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Email:    %s\n", account.Email)
	fmt.Fprintf(w, "Password: %s\n", account.Password)
	fmt.Fprintf(w, "User ID:  %s\n", account.UserID)
	fmt.Fprintf(w, "Verified: %t\n", account.EmailVerified)
	if !account.ProfileCreated {
		fmt.Fprintln(w, "Profile:  not created (it can be created on first login)")
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "\nYou can now log in to the app with these credentials!")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := logger.Init("info"); err != nil {
		fmt.Println("Logger init error:", err)
	}

	application, err := app.New()
	if err != nil {
		logger.Log.Errorln("Unable to load configuration:", err)
		return
	}
	defer application.Close()

	account, err := application.CreateTestUser(ctx)
	if err != nil {
		logger.Log.Errorln("Test user was not created:", err)
		return
	}

	printBanner(os.Stdout, account)
}
