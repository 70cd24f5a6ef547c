package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftedcv/inbridge/internal/linkkit"
	"github.com/craftedcv/inbridge/internal/web"
	webassets "github.com/craftedcv/inbridge/web"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveHTTP = func(server *http.Server) error {
	return server.ListenAndServe()
}

var buildCodeExchanger = func(configuration linkkit.ServerConfig) linkkit.CodeExchanger {
	return linkkit.NewLinkedInExchanger(linkkit.ExchangeConfig{
		ClientID:     configuration.LinkedInClientID,
		ClientSecret: configuration.LinkedInClientSecret,
		RedirectURL:  configuration.RedirectURL,
		Scopes:       configuration.OAuthScopes,
	})
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "inbridge",
		Short:   "Backend bridge for Sign in with LinkedIn profile imports",
		PreRunE: prepareServerConfig,
		RunE:    runServer,
	}

	rootCmd.Flags().String("listen_addr", ":8080", "HTTP listen address")
	rootCmd.Flags().String("linkedin_client_id", "", "LinkedIn OAuth application client ID")
	rootCmd.Flags().String("linkedin_client_secret", "", "LinkedIn OAuth application client secret")
	rootCmd.Flags().String("redirect_uri", "", "Callback URL registered with the LinkedIn application")
	rootCmd.Flags().String("frontend_base_url", "", "Frontend URL the callback redirects to with templateId and sessionId")
	rootCmd.Flags().String("public_base_url", "", "Externally visible base URL of this service; derived per request when empty")
	rootCmd.Flags().StringSlice("oauth_scopes", []string{"openid", "profile", "email"}, "OAuth scopes requested from LinkedIn")
	rootCmd.Flags().Duration("state_ttl", 5*time.Minute, "State token lifetime for authorization round-trips")
	rootCmd.Flags().Bool("enable_cors", false, "Enable CORS for cross-origin frontends")
	rootCmd.Flags().StringSlice("cors_allowed_origins", []string{}, "Allowed origins when CORS is enabled (required if enable_cors is true)")

	_ = viper.BindPFlag("listen_addr", rootCmd.Flags().Lookup("listen_addr"))
	_ = viper.BindPFlag("linkedin_client_id", rootCmd.Flags().Lookup("linkedin_client_id"))
	_ = viper.BindPFlag("linkedin_client_secret", rootCmd.Flags().Lookup("linkedin_client_secret"))
	_ = viper.BindPFlag("redirect_uri", rootCmd.Flags().Lookup("redirect_uri"))
	_ = viper.BindPFlag("frontend_base_url", rootCmd.Flags().Lookup("frontend_base_url"))
	_ = viper.BindPFlag("public_base_url", rootCmd.Flags().Lookup("public_base_url"))
	_ = viper.BindPFlag("oauth_scopes", rootCmd.Flags().Lookup("oauth_scopes"))
	_ = viper.BindPFlag("state_ttl", rootCmd.Flags().Lookup("state_ttl"))
	_ = viper.BindPFlag("enable_cors", rootCmd.Flags().Lookup("enable_cors"))
	_ = viper.BindPFlag("cors_allowed_origins", rootCmd.Flags().Lookup("cors_allowed_origins"))

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()

	return rootCmd
}

const (
	configCodeMissingClientID         = "config.missing_linkedin_client_id"
	configCodeMissingClientSecret     = "config.missing_linkedin_client_secret"
	configCodeMissingRedirectURI      = "config.missing_redirect_uri"
	configCodeInvalidRedirectURI      = "config.invalid_redirect_uri"
	configCodeMissingFrontendBaseURL  = "config.missing_frontend_base_url"
	configCodeInvalidFrontendBaseURL  = "config.invalid_frontend_base_url"
	configCodeInvalidStateTTL         = "config.invalid_state_ttl"
	configCodeUninitializedServerConf = "config.uninitialized_server_config"
)

type contextKey string

const serverConfigContextKey contextKey = "serverConfig"

func prepareServerConfig(command *cobra.Command, arguments []string) error {
	serverConfig, loadErr := LoadServerConfig()
	if loadErr != nil {
		return loadErr
	}
	existingContext := command.Context()
	if existingContext == nil {
		existingContext = context.Background()
	}
	command.SetContext(context.WithValue(existingContext, serverConfigContextKey, serverConfig))
	return nil
}

func configError(code, message string) error {
	return fmt.Errorf("%s: %s", code, message)
}

func LoadServerConfig() (linkkit.ServerConfig, error) {
	clientID := viper.GetString("linkedin_client_id")
	if clientID == "" {
		return linkkit.ServerConfig{}, configError(configCodeMissingClientID, "linkedin_client_id must be provided")
	}

	clientSecret := viper.GetString("linkedin_client_secret")
	if clientSecret == "" {
		return linkkit.ServerConfig{}, configError(configCodeMissingClientSecret, "linkedin_client_secret must be provided")
	}

	redirectURI := viper.GetString("redirect_uri")
	if redirectURI == "" {
		return linkkit.ServerConfig{}, configError(configCodeMissingRedirectURI, "redirect_uri must be provided")
	}
	if !isAbsoluteURL(redirectURI) {
		return linkkit.ServerConfig{}, configError(configCodeInvalidRedirectURI, "redirect_uri must be an absolute URL")
	}

	frontendBaseURL := viper.GetString("frontend_base_url")
	if frontendBaseURL == "" {
		return linkkit.ServerConfig{}, configError(configCodeMissingFrontendBaseURL, "frontend_base_url must be provided")
	}
	if !isAbsoluteURL(frontendBaseURL) {
		return linkkit.ServerConfig{}, configError(configCodeInvalidFrontendBaseURL, "frontend_base_url must be an absolute URL")
	}

	stateTTL := viper.GetDuration("state_ttl")
	if stateTTL <= 0 {
		return linkkit.ServerConfig{}, configError(configCodeInvalidStateTTL, "state_ttl must be greater than zero")
	}

	scopes := viper.GetStringSlice("oauth_scopes")
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}

	return linkkit.ServerConfig{
		LinkedInClientID:     clientID,
		LinkedInClientSecret: clientSecret,
		RedirectURL:          redirectURI,
		OAuthScopes:          scopes,
		PublicBaseURL:        viper.GetString("public_base_url"),
		FrontendBaseURL:      frontendBaseURL,
		StateTTL:             stateTTL,
	}, nil
}

func isAbsoluteURL(raw string) bool {
	parsed, err := url.Parse(raw)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}

func runServer(command *cobra.Command, arguments []string) error {
	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return loggerErr
	}
	defer func() { _ = logger.Sync() }()

	commandContext := command.Context()
	var contextValue any
	if commandContext != nil {
		contextValue = commandContext.Value(serverConfigContextKey)
	}
	serverConfig, ok := contextValue.(linkkit.ServerConfig)
	if !ok {
		return configError(configCodeUninitializedServerConf, "server configuration not prepared; PreRunE must execute before RunE")
	}

	listenAddr := viper.GetString("listen_addr")
	enableCORS := viper.GetBool("enable_cors")
	corsAllowedOrigins := viper.GetStringSlice("cors_allowed_origins")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(zapLoggerMiddleware(logger))

	if enableCORS {
		corsMiddleware, corsErr := web.ConfigureCORS(logger, corsAllowedOrigins)
		if corsErr != nil {
			return corsErr
		}
		router.Use(corsMiddleware)
	}

	router.GET("/static/import-client.js", func(contextGin *gin.Context) {
		web.ServeEmbeddedStaticJS(contextGin, webassets.FS, "import-client.js")
	})

	router.GET("/demo/config.js", func(contextGin *gin.Context) {
		web.ServeDemoConfig(contextGin, web.DemoConfig{
			BaseURL: serverConfig.PublicBaseURL,
		})
	})

	router.GET("/demo", func(contextGin *gin.Context) {
		contextGin.File("web/demo.html")
	})

	stateStore := linkkit.NewMemoryFlowStateStore(serverConfig.StateTTL)
	sessionStore := linkkit.NewMemorySessionStore()
	logger.Info("using in-memory state and session stores")

	exchanger := buildCodeExchanger(serverConfig)
	linkkit.ProvideCodeExchanger(exchanger)
	defer linkkit.ProvideCodeExchanger(nil)

	clock := linkkit.NewSystemClock()
	linkkit.ProvideClock(clock)
	defer linkkit.ProvideClock(nil)

	linkkit.ProvideLogger(logger)
	defer linkkit.ProvideLogger(nil)

	metricsRecorder := linkkit.NewCounterMetrics()
	linkkit.ProvideMetrics(metricsRecorder)
	defer linkkit.ProvideMetrics(nil)

	linkkit.MountImportRoutes(router, serverConfig, stateStore, sessionStore)

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()

	go func() {
		stopSignals := make(chan os.Signal, 1)
		signal.Notify(stopSignals, syscall.SIGINT, syscall.SIGTERM)
		<-stopSignals
		graceCtx, graceCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer graceCancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", listenAddr))
	if err := serveHTTP(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen error: %w", err)
	}
	return nil
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		startTime := time.Now()
		contextGin.Next()
		duration := time.Since(startTime)
		logger.Info("http",
			zap.String("method", contextGin.Request.Method),
			zap.String("path", contextGin.Request.URL.Path),
			zap.Int("status", contextGin.Writer.Status()),
			zap.String("ip", contextGin.ClientIP()),
			zap.Duration("elapsed", duration),
		)
	}
}
