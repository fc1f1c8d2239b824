package cmd

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/obiesoto/herald/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start a herald server",
	Long:  `The herald server exposes the dispatch API: send endpoints per channel plus sender/recipient management.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(serverConfig(), isDevEnv)
	},
}

var serverConfigFile string

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "Config for server")
}

func serverConfig() *viper.Viper {
	// .env is optional; real deployments set env vars directly
	godotenv.Load()

	config := viper.New()

	if isDevEnv {
		serverConfigFile = devConfigFilePath()
	}

	if serverConfigFile != "" {
		config.SetConfigFile(serverConfigFile)
		if err := config.ReadInConfig(); err != nil {
			log.Panicf("error reading server config file: %v", err)
		}
	}

	bindEnvVars(config)
	config.AutomaticEnv() // read in environment variables that match
	setDefaults(config)

	return config
}

// bindEnvVars maps config keys to their env var spellings, so secrets
// never need to live in the yaml file. Env vars override file values.
func bindEnvVars(config *viper.Viper) {
	config.BindEnv("herald.sessionSecret", "SESSION_SECRET")
	config.BindEnv("herald.publicBaseUrl", "PUBLIC_BASE_URL")
	config.BindEnv("herald.listener.port", "PORT")
	config.BindEnv("database.url", "DATABASE_URL")
	config.BindEnv("database.sqlite.passPhrase", "SQLITE_PASS_PHRASE")
	config.BindEnv("smtp.host", "SMTP_HOST")
	config.BindEnv("smtp.port", "SMTP_PORT")
	config.BindEnv("twilio.accountSid", "TWILIO_ACCOUNT_SID")
	config.BindEnv("twilio.authToken", "TWILIO_AUTH_TOKEN")
	config.BindEnv("twilio.phoneNumber", "TWILIO_PHONE_NUMBER")
	config.BindEnv("onesignal.appId", "ONESIGNAL_APP_ID")
	config.BindEnv("onesignal.restApiKey", "ONESIGNAL_REST_API_KEY")
	config.BindEnv("firebase.serviceAccount", "FIREBASE_SERVICE_ACCOUNT")
	config.BindEnv("imgbb.apiKey", "IMGBB_API_KEY")
	config.BindEnv("google.applicationCredentials", "GOOGLE_APPLICATION_CREDENTIALS")
}

func setDefaults(config *viper.Viper) {
	config.SetDefault("herald.listener.port", 3000)
	config.SetDefault("smtp.host", "smtp.gmail.com")
	config.SetDefault("smtp.port", 587)
}

func devConfigFilePath() string {
	configDir, err := os.Getwd()
	if err != nil {
		log.Panic(err)
	}

	return filepath.Join(configDir, "dev", "config", "server.yml")
}
