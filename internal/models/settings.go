package models

// Settings is a singleton document holding provider configuration.
// Secret fields are masked in API responses.
type Settings struct {
	SettingsID           string `json:"id"`
	OCRProvider          string `json:"ocr_provider"`
	VisionAPIKey         string `json:"vision_api_key,omitempty"`
	VoiceProvider        string `json:"voice_provider"`
	OpenAIAPIKey         string `json:"openai_api_key,omitempty"`
	StorageType          string `json:"storage_type"`
	FTPHost              string `json:"ftp_host,omitempty"`
	FTPUser              string `json:"ftp_user,omitempty"`
	FTPPassword          string `json:"ftp_password,omitempty"`
	AWSAccessKey         string `json:"aws_access_key,omitempty"`
	AWSSecretKey         string `json:"aws_secret_key,omitempty"`
	AWSBucket            string `json:"aws_bucket,omitempty"`
	AWSRegion            string `json:"aws_region,omitempty"`
	GDriveClientID       string `json:"google_drive_client_id,omitempty"`
	GDriveClientSecret   string `json:"google_drive_client_secret,omitempty"`
	OneDriveClientID     string `json:"onedrive_client_id,omitempty"`
	OneDriveClientSecret string `json:"onedrive_client_secret,omitempty"`
	Language             string `json:"language"`
}
