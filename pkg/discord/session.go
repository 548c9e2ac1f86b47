package discord

import (
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

const BotTokenFormat = "Bot %s"

// CurrentApplication is the ID placeholder for the application owning the token.
const CurrentApplication = "@me"

// Ensure SessionIFace is implemented by discordgo.Session
var _ SessionIFace = (*discordgo.Session)(nil)

type SessionIFace interface {
	// Command catalog
	ApplicationCommands(appID string, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)

	// Application lookup
	Application(appID string) (*discordgo.Application, error)
}

// NewSession creates a REST-only session. Rate limits are returned as errors instead
// of being retried inside discordgo so callers can apply their own policy. A 429
// with a non-JSON body comes back as *RateLimitResponseError.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New(fmt.Sprintf(BotTokenFormat, token))
	if err != nil {
		return nil, err
	}
	session.ShouldRetryOnRateLimit = false
	if session.Client == nil {
		session.Client = &http.Client{}
	}
	session.Client.Transport = newRateLimitTransport(session.Client.Transport)
	return session, nil
}
