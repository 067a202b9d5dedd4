// Command seed provisions the demo accounts used by the LMS environment
// through the bank's HTTP API. Accounts that already exist are skipped, so the
// command is safe to run repeatedly.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

type seedAccount struct {
	AccountNumber string `json:"accountNumber"`
	Secret        string `json:"secret"`
	Balance       int64  `json:"balance"`
	Currency      string `json:"currency"`
}

var seedAccounts = []seedAccount{
	{AccountNumber: "LMS_ORG_MAIN", Secret: "org-secret", Balance: 100000, Currency: "BDT"},
	{AccountNumber: "ACC100200", Secret: "secret123", Balance: 5000, Currency: "BDT"},
	{AccountNumber: "ACC_JOHN", Secret: "john789", Balance: 2500, Currency: "BDT"},
	{AccountNumber: "ACC_SARAH", Secret: "sarah456", Balance: 3000, Currency: "BDT"},
	{AccountNumber: "ACC_MIKE", Secret: "mike123", Balance: 4000, Currency: "BDT"},
	{AccountNumber: "ACC_ALICE", Secret: "alice123", Balance: 6000, Currency: "BDT"},
	{AccountNumber: "ACC_BOB", Secret: "bob123", Balance: 7500, Currency: "BDT"},
	{AccountNumber: "A", Secret: "pass123", Balance: 5000, Currency: "BDT"},
	{AccountNumber: "B", Secret: "pass123", Balance: 5000, Currency: "BDT"},
	{AccountNumber: "C", Secret: "pass123", Balance: 5000, Currency: "BDT"},
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	baseURL := os.Getenv("BANK_SERVER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8001"
	}
	setupURL := baseURL + "/api/v1/accounts/setup"

	client := &http.Client{Timeout: 10 * time.Second}

	var failures int
	for _, acc := range seedAccounts {
		if err := setupAccount(client, setupURL, acc); err != nil {
			log.Error("Failed to seed account", "account_number", acc.AccountNumber, "error", err)
			failures++
			continue
		}
		log.Info("Seeded bank account", "account_number", acc.AccountNumber)
	}

	if failures > 0 {
		log.Error("Seeding finished with failures", "failed", failures, "total", len(seedAccounts))
		os.Exit(1)
	}
	log.Info("Seeding finished", "accounts", len(seedAccounts))
}

func setupAccount(client *http.Client, url string, acc seedAccount) error {
	body, err := json.Marshal(acc)
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		return nil
	case http.StatusBadRequest:
		// Most likely the account already exists from a previous run
		return nil
	default:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
