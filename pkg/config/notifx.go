package config

import "github.com/spf13/viper"

// NotifxConfig configures the notification system.
type NotifxConfig struct {
	// Provider is one of console, ses, smtp, resend, brevo
	Provider    string
	FromAddress string
	FromName    string
	AWSRegion   string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	ResendAPIKey string
	BrevoAPIKey  string
	BrevoBaseURL string
}

func setNotifxDefaults(v *viper.Viper) {
	v.SetDefault("notifx_provider", "console")
	v.SetDefault("notifx_from_address", "noreply@cipherbc.com")
	v.SetDefault("notifx_from_name", "CipherBC")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_user", "")
	v.SetDefault("smtp_pass", "")
	v.SetDefault("resend_api_key", "")
	v.SetDefault("brevo_api_key", "")
	v.SetDefault("brevo_base_url", "https://api.brevo.com")
}

func loadNotifxConfig(v *viper.Viper) NotifxConfig {
	return NotifxConfig{
		Provider:     v.GetString("notifx_provider"),
		FromAddress:  v.GetString("notifx_from_address"),
		FromName:     v.GetString("notifx_from_name"),
		AWSRegion:    v.GetString("aws_region"),
		SMTPHost:     v.GetString("smtp_host"),
		SMTPPort:     v.GetInt("smtp_port"),
		SMTPUser:     v.GetString("smtp_user"),
		SMTPPass:     v.GetString("smtp_pass"),
		ResendAPIKey: v.GetString("resend_api_key"),
		BrevoAPIKey:  v.GetString("brevo_api_key"),
		BrevoBaseURL: v.GetString("brevo_base_url"),
	}
}
