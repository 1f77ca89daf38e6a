package core

import "fmt"

// User-facing replies.
const (
	msgAlreadyVerified = "✅ You are already verified!"
	msgWelcome         = "👋 Welcome! Please enter your name:"
	msgAccountNotFound = "❌ Account not found. Try again:"
	msgNoAccounts      = "❌ No accounts verified. Please restart."
	msgSaveFailed      = "❌ Could not record your verification right now. Please restart later."
	msgSendStart       = "Send /start to begin verification."
	msgUploadPrompt    = "📤 Send me the CSV file to upload."
	msgUploadInvalid   = "❌ Please upload a valid CSV file."
	msgUploadOK        = "✅ CSV uploaded successfully!"
	msgUploadDenied    = "❌ You are not authorized to upload CSV files."
	msgExportDenied    = "❌ You are not authorized to access user codes."
	msgNoUsers         = "❌ No users verified yet."
	msgExportFailed    = "❌ Could not export user codes."
)

func msgAskFirstAccount(name string) string {
	return fmt.Sprintf("Hello %s! Please enter your first Demat account number:", name)
}

func msgAccountVerified(account string) string {
	return fmt.Sprintf("✅ Account %s is verified. Enter next account number or type '%s':", account, DoneKeyword)
}

func msgCodeIssued(code string) string {
	return fmt.Sprintf("🎉 Verification complete! Your unique code is: %s", code)
}

func msgUploadFailed(err error) string {
	return fmt.Sprintf("❌ File upload failed: %v", err)
}
