package domain

// AccountView is a channel account with its bot token masked.
type AccountView struct {
	ID       string  `json:"id"`
	Enabled  bool    `json:"enabled"`
	BotToken *string `json:"botToken"`
}

// ChannelView summarizes one configured messaging channel.
type ChannelView struct {
	Enabled      bool          `json:"enabled"`
	AccountCount int           `json:"accountCount"`
	Accounts     []AccountView `json:"accounts"`
}

// ChannelList is the payload of the channels endpoint, keyed by channel name.
type ChannelList struct {
	Channels map[string]ChannelView `json:"channels"`
	Error    string                 `json:"error,omitempty"`
}
