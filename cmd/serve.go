package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sesbouncy/sesbouncy/agent"
	"github.com/sesbouncy/sesbouncy/email"
	"github.com/sesbouncy/sesbouncy/events"
	"github.com/sesbouncy/sesbouncy/handler"
	"github.com/sesbouncy/sesbouncy/metrics"
	"github.com/sesbouncy/sesbouncy/sign"
	"github.com/spf13/cobra"
)

const serveDescription = `` +
	`Runs the webhook server receiving SES feedback notifications from SNS.

Subscribe the server's /email/feedback endpoint to the SNS topics that
receive bounce, complaint, and delivery notifications for your SES
identities. The server confirms pending subscriptions on its own unless
AUTO_CONFIRM_SUBSCRIPTIONS=false.

Configuration comes from environment variables; FEEDBACK_TABLE_NAME is the
only required one. Prometheus metrics are exposed on /metrics.`

// FeedbackPath is the endpoint to subscribe to SNS feedback topics.
const FeedbackPath = "/email/feedback"

const MetricsPath = "/metrics"

// Timeout on outbound requests for signing certificates and subscription
// confirmations.
const subCallTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(newServeCmd(NewDynamoDb, NewSesV2Client))
}

func newServeCmd(
	newDynDb DynamoDbFactoryFunc, newSesV2 SesV2FactoryFunc,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the SES feedback webhook server",
		Long:  serveDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			srv, err := newServer(
				os.Getenv, getIntFlag(cmd, FlagPort), newDynDb, newSesV2,
			)

			if err != nil {
				return err
			}
			cmd.Printf("listening on %s\n", srv.Addr)
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().IntP(FlagPort, "p", 8080, "port to listen on")
	return cmd
}

func newServer(
	getenv func(string) string,
	port int,
	newDynDb DynamoDbFactoryFunc,
	newSesV2 SesV2FactoryFunc,
) (srv *http.Server, err error) {
	opts, err := handler.GetOptions(getenv)
	if err != nil {
		return
	}

	certGuard, err := sign.NewDomainGuard(opts.CertDomainPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid CERT_DOMAIN_REGEX: %s", err)
	}

	subscribeGuard, err := sign.NewDomainGuard(opts.SubscribeDomainPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid SUBSCRIBE_DOMAIN_REGEX: %s", err)
	}

	logger := log.Default()
	httpClient := newRetryingHttpClient()

	dispatcher := &agent.Dispatcher{Log: logger}
	metrics.RegisterListeners(dispatcher)

	if opts.SuppressHardBounces {
		listener := &email.SuppressingListener{
			Suppressor: &email.SesSuppressor{Client: newSesV2()},
			Log:        logger,
		}
		dispatcher.OnFeedbackIngested(listener.SuppressIngested)
	}

	dyndb := newDynDb(opts.FeedbackTableName)
	dyndb.TimeLayout = events.TimeLayout(opts.NaiveTimestamps)

	h := &handler.Handler{
		TopicArns: opts.TopicArns,
		CertGuard: certGuard,
		Verifier: &sign.CertVerifier{
			Fetcher:   sign.NewCachingFetcher(httpClient),
			CertGuard: certGuard,
			Log:       logger,
		},
		VerifySignatures: opts.VerifySignatures,
		AutoConfirm:      opts.AutoConfirmSubscriptions,
		Confirmer: &handler.HttpConfirmer{
			Client: httpClient, Guard: subscribeGuard, Log: logger,
		},
		Agent: &agent.ProdAgent{
			Db: dyndb, Dispatcher: dispatcher, NewId: uuid.New, Log: logger,
		},
		Dispatcher: dispatcher,
		Log:        logger,
	}

	router := mux.NewRouter()
	router.Handle(
		FeedbackPath, alice.New(logRequests(logger)).Then(h),
	).Methods(http.MethodPost)
	router.Handle(MetricsPath, promhttp.Handler()).Methods(http.MethodGet)

	// An unsupported method looks the same as an unknown path, so probing
	// the endpoint reveals nothing.
	router.MethodNotAllowedHandler = http.NotFoundHandler()

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}, nil
}

func newRetryingHttpClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = subCallTimeout
	rc.Logger = nil
	return rc.StandardClient()
}

func logRequests(logger *log.Logger) alice.Constructor {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Printf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
			h.ServeHTTP(w, r)
		})
	}
}
