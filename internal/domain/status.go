package domain

// GatewayPorts are the ports the OpenClaw gateway is configured to listen on.
type GatewayPorts struct {
	Port     int `json:"port"`
	HTTPPort int `json:"httpPort"`
}

// Status is the payload of the status endpoint.
type Status struct {
	Status   string        `json:"status"` // "online" | "error"
	Gateway  *GatewayPorts `json:"gateway,omitempty"`
	NgrokURL *string       `json:"ngrokUrl"`
	Uptime   string        `json:"uptime,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// TunnelStart is the payload of the ngrok start endpoint.
type TunnelStart struct {
	Status   string `json:"status,omitempty"` // "already running" | "starting"
	NgrokURL string `json:"ngrokUrl,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}
