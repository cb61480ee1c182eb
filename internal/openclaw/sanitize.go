package openclaw

// Mask replaces secret values in the config dump.
const Mask = "***"

// channelSecretKeys are masked at any depth below "channels".
var channelSecretKeys = map[string]bool{
	"botToken":      true,
	"apiKey":        true,
	"token":         true,
	"password":      true,
	"appSecret":     true,
	"signingSecret": true,
}

// Sanitized returns a deep copy of the full document with channel secrets
// and gateway auth credentials masked.
func (c *Config) Sanitized() map[string]any {
	out, _ := deepCopy(c.raw).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}

	if channels, ok := out["channels"].(map[string]any); ok {
		maskKeys(channels, channelSecretKeys)
	}
	if gw, ok := out["gateway"].(map[string]any); ok {
		if auth, ok := gw["auth"].(map[string]any); ok {
			for _, k := range []string{"token", "password"} {
				if _, present := auth[k]; present {
					auth[k] = Mask
				}
			}
		}
	}
	return out
}

func maskKeys(v any, keys map[string]bool) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if keys[k] {
				t[k] = Mask
				continue
			}
			maskKeys(child, keys)
		}
	case []any:
		for _, child := range t {
			maskKeys(child, keys)
		}
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, child := range t {
			m[k] = deepCopy(child)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, child := range t {
			s[i] = deepCopy(child)
		}
		return s
	default:
		return v
	}
}
