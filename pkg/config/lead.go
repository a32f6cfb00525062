package config

import "github.com/spf13/viper"

// CRMConfig configures the HubSpot integration. The Forms API is used when
// PortalID and FormGUID are set, otherwise the Contacts API when AccessToken
// is set; with neither, CRM forwarding is skipped.
type CRMConfig struct {
	PortalID     string
	FormGUID     string
	AccessToken  string
	FormsBaseURL string
	APIBaseURL   string
	PageURI      string
	PageName     string
}

// AuditConfig configures best-effort audit sinks. Empty values disable a sink.
type AuditConfig struct {
	WebhookURL string
	S3Bucket   string
	S3Prefix   string
}

func setCRMDefaults(v *viper.Viper) {
	v.SetDefault("hubspot_portal_id", "")
	v.SetDefault("hubspot_form_guid", "")
	v.SetDefault("hubspot_access_token", "")
	v.SetDefault("hubspot_forms_base_url", "https://api.eu1.hsforms.com")
	v.SetDefault("hubspot_api_base_url", "https://api.eu1.hubapi.com")
	v.SetDefault("hubspot_page_uri", "https://cipherbc.com/contact")
	v.SetDefault("hubspot_page_name", "CipherBC Contact Form")
}

func setAuditDefaults(v *viper.Viper) {
	v.SetDefault("form_submission_webhook", "")
	v.SetDefault("audit_s3_bucket", "")
	v.SetDefault("audit_s3_prefix", "submissions/")
}

func loadCRMConfig(v *viper.Viper) CRMConfig {
	return CRMConfig{
		PortalID:     v.GetString("hubspot_portal_id"),
		FormGUID:     v.GetString("hubspot_form_guid"),
		AccessToken:  v.GetString("hubspot_access_token"),
		FormsBaseURL: v.GetString("hubspot_forms_base_url"),
		APIBaseURL:   v.GetString("hubspot_api_base_url"),
		PageURI:      v.GetString("hubspot_page_uri"),
		PageName:     v.GetString("hubspot_page_name"),
	}
}

func loadAuditConfig(v *viper.Viper) AuditConfig {
	return AuditConfig{
		WebhookURL: v.GetString("form_submission_webhook"),
		S3Bucket:   v.GetString("audit_s3_bucket"),
		S3Prefix:   v.GetString("audit_s3_prefix"),
	}
}
