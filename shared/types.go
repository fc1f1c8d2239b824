package shared

type ServerConfig struct {
	Herald    HeraldConfig    `mapstructure:"herald" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Smtp      SmtpConfig      `mapstructure:"smtp"`
	Twilio    TwilioConfig    `mapstructure:"twilio"`
	OneSignal OneSignalConfig `mapstructure:"onesignal"`
	Firebase  FirebaseConfig  `mapstructure:"firebase"`
	Imgbb     ImgbbConfig     `mapstructure:"imgbb"`
	Google    GoogleConfig    `mapstructure:"google"`
}

type HeraldConfig struct {
	SessionSecret string         `mapstructure:"sessionSecret" validate:"required"`
	PublicBaseURL string         `mapstructure:"publicBaseUrl"`
	Listener      ListenerConfig `mapstructure:"listener" validate:"required"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required"`
}

type DatabaseConfig struct {
	// URL switches the store to postgres when set; sqlite otherwise.
	URL    string       `mapstructure:"url"`
	Sqlite SqliteConfig `mapstructure:"sqlite"`
}

type SqliteConfig struct {
	File       string `mapstructure:"file"`
	PassPhrase string `mapstructure:"passPhrase"`
}

type SmtpConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// TwilioConfig is the zero-config single-tenant fallback account, used
// when no Twilio accounts exist in the store.
type TwilioConfig struct {
	AccountSid   string `mapstructure:"accountSid"`
	AuthToken    string `mapstructure:"authToken"`
	PhoneNumber  string `mapstructure:"phoneNumber"`
	FriendlyName string `mapstructure:"friendlyName"`
}

type OneSignalConfig struct {
	AppID      string `mapstructure:"appId"`
	RestAPIKey string `mapstructure:"restApiKey"`
}

type FirebaseConfig struct {
	// ServiceAccount holds the service account key JSON itself,
	// not a path to it.
	ServiceAccount string `mapstructure:"serviceAccount"`
}

type ImgbbConfig struct {
	APIKey string `mapstructure:"apiKey"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type StorageConfig struct {
	Bucket              string      `mapstructure:"bucket" validate:"required_with=EnableStoreBackup"`
	Prefix              string      `mapstructure:"prefix"`
	StoreBackupSchedule string      `mapstructure:"storeBackupSchedule" validate:"required_with=EnableStoreBackup"`
	EnableStoreBackup   interface{} `mapstructure:"enableStoreBackup" validate:"omitempty,bool"`
}
