package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/obiesoto/herald/server/backup"
	"github.com/obiesoto/herald/server/fcm"
	"github.com/obiesoto/herald/server/imghost"
	"github.com/obiesoto/herald/server/logger"
	"github.com/obiesoto/herald/server/mailer"
	"github.com/obiesoto/herald/server/models"
	"github.com/obiesoto/herald/server/onesignal"
	"github.com/obiesoto/herald/server/twilio"
	"github.com/obiesoto/herald/shared"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

type RequestContextKey string

var (
	logg     = logger.NewNopLogger()
	validate = validator.New()
)

// Provider seams. Handlers depend on these interfaces so tests can stand
// in for the real SDK clients.
type twilioSender interface {
	SendSMS(to, body string) (string, error)
	SendMMS(to, body, mediaURL string) (string, error)
}

type pushMulticaster interface {
	Multicast(ctx context.Context, title, body, imageURL string, tokens []string) []fcm.SendResult
}

type pushAPI interface {
	CreateNotification(ctx context.Context, notification *onesignal.Notification) (*onesignal.CreateNotificationResponse, error)
}

type imageHost interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

type mailSender interface {
	Verify() error
	Send(to, subject, body string, attachment *mailer.Attachment) error
}

var (
	newTwilioClient = func(credential *twilio.Credential) twilioSender {
		return twilio.NewClient(credential)
	}
	newMailSender = func(host string, port int, email, password string) mailSender {
		return mailer.NewSender(host, port, email, password)
	}
)

// App carries every dependency a request handler needs. It is built once
// at startup and shared across requests; nothing in it is mutated after
// construction.
type App struct {
	config         *shared.ServerConfig
	fcm            pushMulticaster
	onesignal      pushAPI
	imageHost      imageHost
	twilioFallback *twilio.Credential
}

func NewApp(config *shared.ServerConfig) *App {
	app := &App{config: config}

	if config.Firebase.ServiceAccount != "" {
		client, err := fcm.NewClient(context.Background(), []byte(config.Firebase.ServiceAccount))
		if err != nil {
			logg.Errorf("firebase messaging unavailable: %v", err)
		} else {
			app.fcm = client
		}
	}

	if config.OneSignal.AppID != "" && config.OneSignal.RestAPIKey != "" {
		app.onesignal = onesignal.NewClient(config.OneSignal.AppID, config.OneSignal.RestAPIKey)
	}

	if config.Imgbb.APIKey != "" {
		app.imageHost = imghost.NewClient(config.Imgbb.APIKey)
	}

	if config.Twilio.AccountSid != "" && config.Twilio.AuthToken != "" && config.Twilio.PhoneNumber != "" {
		friendlyName := config.Twilio.FriendlyName
		if friendlyName == "" {
			friendlyName = "Main Account"
		}
		app.twilioFallback = &twilio.Credential{
			AccountSid:   config.Twilio.AccountSid,
			AuthToken:    config.Twilio.AuthToken,
			PhoneNumber:  config.Twilio.PhoneNumber,
			FriendlyName: friendlyName,
		}
	}

	return app
}

func (app *App) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(initialContextMiddleware, loggingMiddleware)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc("/auth/login", app.logIn).Methods("POST")
	router.HandleFunc("/auth/logout", app.logOut).Methods("POST")

	router.HandleFunc("/users", app.adminOnly(app.listUsers)).Methods("GET")
	router.HandleFunc("/users", app.adminOnly(app.createUser)).Methods("POST")
	router.HandleFunc("/users/{id}", app.adminOnly(app.deleteUser)).Methods("DELETE")

	router.HandleFunc("/sms/accounts", app.listTwilioAccounts).Methods("GET")
	router.HandleFunc("/sms/accounts", app.createTwilioAccount).Methods("POST")
	router.HandleFunc("/sms/send", app.sendSMS).Methods("POST")

	router.HandleFunc("/push/accounts", app.listEmailAccounts).Methods("GET")
	router.HandleFunc("/push/accounts", app.createEmailAccount).Methods("POST")
	router.HandleFunc("/push/contacts", app.listContacts).Methods("GET")
	router.HandleFunc("/push/contacts", app.createContact).Methods("POST")
	router.HandleFunc("/push/tokens", app.listPushTokens).Methods("GET")
	router.HandleFunc("/push/register", app.registerPushToken).Methods("POST")
	router.HandleFunc("/push/register", app.unregisterPushToken).Methods("DELETE")
	router.HandleFunc("/push/register-phone", app.registerPhone).Methods("POST")

	router.HandleFunc("/push/send", app.sendEmail).Methods("POST")
	router.HandleFunc("/push/send-mms", app.sendMMS).Methods("POST")
	router.HandleFunc("/push/send-fcm", app.sendFCM).Methods("POST")
	router.HandleFunc("/push/send-onesignal", app.sendOneSignal).Methods("POST")
	router.HandleFunc("/push/send-by-phone", app.sendByPhone).Methods("POST")
	router.HandleFunc("/push/upload-image", app.uploadImage).Methods("POST")

	return router
}

func Start(config *viper.Viper, devMode bool) {
	logg = logger.NewLogger()

	serverConfig := &shared.ServerConfig{}
	fatalOnError(config.Unmarshal(serverConfig))
	fatalOnError(validate.Struct(serverConfig))

	fatalOnError(models.Initialize(&serverConfig.Database))
	fatalOnError(models.AutoMigrate())

	app := NewApp(serverConfig)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%v", serverConfig.Herald.Listener.Port),
		Handler: app.Router(),
	}

	scheduler := startBackupSchedule(serverConfig)

	go serve(server)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cleanup(scheduler, server)
}

// startBackupSchedule wires the periodic store snapshot when a bucket is
// configured. Postgres deployments are expected to use their own backup
// tooling, so this only covers the sqlite file.
func startBackupSchedule(config *shared.ServerConfig) *gocron.Scheduler {
	enabled, _ := config.Google.Storage.EnableStoreBackup.(bool)
	if !enabled || config.Database.URL != "" {
		return nil
	}

	uploader, err := backup.NewUploader(&config.Google)
	if err != nil {
		logg.Errorf("store backup disabled: %v", err)
		return nil
	}

	storeFile := config.Database.Sqlite.File
	if storeFile == "" {
		storeFile = "herald.db"
	}

	scheduler := gocron.NewScheduler(time.UTC)
	_, err = scheduler.Cron(config.Google.Storage.StoreBackupSchedule).Do(func() {
		if err := uploader.UploadStoreFile(storeFile); err != nil {
			logg.Errorf("store backup failed: %v", err)
			return
		}
		logg.Infof("store backup uploaded: %v", storeFile)
	})
	if err != nil {
		logg.Errorf("store backup disabled, bad schedule %q: %v",
			config.Google.Storage.StoreBackupSchedule, err)
		return nil
	}
	scheduler.StartAsync()

	return scheduler
}

func serve(server *http.Server) {
	logg.Infof("Herald server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(scheduler *gocron.Scheduler, server *http.Server) {
	if scheduler != nil {
		scheduler.Stop()
	}

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("Herald server shutdown failed:%+s", err)
	}

	logg.Infof("Herald server stopped properly")
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
