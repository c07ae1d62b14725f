// Package telegram is a small client for the Telegram Bot API covering the
// calls the invite bot makes: invite link management, chat administrator
// lookups, messaging and update polling.
//
// Every method posts a JSON body to {BaseURL}/bot{Token}/{method} and
// unwraps the {"ok", "result"} envelope. Non-ok responses come back as
// *APIError.
package telegram
