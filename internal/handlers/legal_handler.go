package handlers

import (
	"html"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/platform"
	"github.com/gofiber/fiber/v2"
)

const legalStyle = `<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>`

func appName(c *fiber.Ctx) string {
	return html.EscapeString(platform.From(c).Config.AppName)
}

func PrivacyPolicy(c *fiber.Ctx) error {
	name := appName(c)
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Privacy Policy - ` + name + `</title>
` + legalStyle + `
</head><body>
<h1>Privacy Policy</h1>
<p>Last updated: October 2026</p>
<h2>Information We Collect</h2>
<p>We collect your name, email address and, if you provide it, your phone number. Sunrise members also give us their club ID. If you sign in with Google, we receive your Google account identifier, email and profile photo.</p>
<h2>How We Use Your Information</h2>
<p>Your data is used to operate ` + name + `, authenticate your account and personalize the news headlines we show you.</p>
<h2>Personalized Content</h2>
<p>Your stated interests and location are sent to our AI content provider to generate headlines. No account credentials are shared.</p>
<h2>Data Storage</h2>
<p>Passwords are stored only as salted hashes. We do not sell your personal information to third parties.</p>
<h2>Contact</h2>
<p>For questions about this policy, contact us at privacy@newsaccess.app</p>
</body></html>`)
}

func TermsOfService(c *fiber.Ctx) error {
	name := appName(c)
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Terms of Service - ` + name + `</title>
` + legalStyle + `
</head><body>
<h1>Terms of Service</h1>
<p>Last updated: October 2026</p>
<h2>Acceptance</h2>
<p>By creating an account on ` + name + `, you agree to these terms.</p>
<h2>Accounts</h2>
<p>You are responsible for keeping your credentials secret. Sunrise membership requires a valid club ID issued by your club.</p>
<h2>AI-Generated Content</h2>
<p>Headlines and topic suggestions are generated automatically and may be inaccurate. Verify important news with the original source.</p>
<h2>Termination</h2>
<p>We may suspend or terminate accounts that violate these terms.</p>
<h2>Contact</h2>
<p>For questions, contact us at support@newsaccess.app</p>
</body></html>`)
}
