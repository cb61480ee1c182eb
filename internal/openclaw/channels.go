package openclaw

import (
	"encoding/json"
	"slices"

	"github.com/soyeahso/clawchat/internal/domain"
)

type rawChannel struct {
	Enabled  *bool                 `json:"enabled"`
	Accounts map[string]rawAccount `json:"accounts"`
}

type rawAccount struct {
	Enabled  *bool  `json:"enabled"`
	BotToken string `json:"botToken"`
}

// ChannelViews renders every channel whose configuration is a JSON object.
// Scalar entries under "channels" (shared defaults and the like) are skipped.
// Accounts are ordered by ID.
func (c *Config) ChannelViews() map[string]domain.ChannelView {
	out := make(map[string]domain.ChannelView, len(c.Channels))
	for name, msg := range c.Channels {
		if !isObject(msg) {
			continue
		}
		var ch rawChannel
		if err := json.Unmarshal(msg, &ch); err != nil {
			continue
		}

		ids := make([]string, 0, len(ch.Accounts))
		for id := range ch.Accounts {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		accounts := make([]domain.AccountView, 0, len(ids))
		for _, id := range ids {
			acc := ch.Accounts[id]
			accounts = append(accounts, domain.AccountView{
				ID:       id,
				Enabled:  boolOr(acc.Enabled, true),
				BotToken: MaskToken(acc.BotToken),
			})
		}

		out[name] = domain.ChannelView{
			Enabled:      boolOr(ch.Enabled, true),
			AccountCount: len(accounts),
			Accounts:     accounts,
		}
	}
	return out
}

// MaskToken keeps only the last 10 characters of a secret, prefixed by
// "***". An empty token yields nil.
func MaskToken(token string) *string {
	if token == "" {
		return nil
	}
	r := []rune(token)
	if len(r) > 10 {
		r = r[len(r)-10:]
	}
	masked := "***" + string(r)
	return &masked
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func isObject(msg json.RawMessage) bool {
	for _, c := range msg {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
