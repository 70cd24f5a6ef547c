package linkkit

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MountImportRoutes registers /api/linkedin/import, /api/linkedin/auth,
// /api/linkedin/callback, /api/user-data/:sessionId, and /healthz.
func MountImportRoutes(router gin.IRouter, configuration ServerConfig, states FlowStateStore, sessions SessionStore) {
	router.GET("/healthz", func(contextGin *gin.Context) {
		contextGin.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/api/linkedin/import", func(contextGin *gin.Context) {
		var inbound struct {
			LinkedInURL string `json:"linkedinUrl"`
			TemplateID  string `json:"templateId"`
		}
		if err := contextGin.BindJSON(&inbound); err != nil {
			activeMetrics().Increment(metricImportRejected)
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
			return
		}
		if strings.TrimSpace(inbound.TemplateID) == "" {
			activeMetrics().Increment(metricImportRejected)
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing_template_id"})
			return
		}
		if !ValidateProfileURL(inbound.LinkedInURL) {
			activeMetrics().Increment(metricImportRejected)
			activeLogger().Warn("rejected import request", zap.String("linkedin_url", inbound.LinkedInURL))
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_profile_url"})
			return
		}

		authorizationURL := requestBaseURL(contextGin.Request, configuration) + "/api/linkedin/auth?" + url.Values{
			"templateId": {inbound.TemplateID},
		}.Encode()

		activeMetrics().Increment(metricImportAccepted)
		contextGin.JSON(http.StatusOK, gin.H{"authorizationUrl": authorizationURL})
	})

	router.GET("/api/linkedin/auth", func(contextGin *gin.Context) {
		templateID := strings.TrimSpace(contextGin.Query("templateId"))
		if templateID == "" {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing_template_id"})
			return
		}

		exchanger := activeCodeExchanger()
		if exchanger == nil {
			activeLogger().Error("no code exchanger provided")
			contextGin.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		state, issueErr := states.Issue(contextGin, templateID)
		if issueErr != nil {
			activeLogger().Error("issuing flow state failed", zap.Error(issueErr))
			contextGin.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		activeMetrics().Increment(metricAuthRedirect)
		contextGin.Redirect(http.StatusFound, exchanger.AuthCodeURL(state))
	})

	router.GET("/api/linkedin/callback", func(contextGin *gin.Context) {
		if providerError := contextGin.Query("error"); providerError != "" {
			activeMetrics().Increment(metricCallbackInvalidState)
			activeLogger().Warn("provider returned error", zap.String("provider_error", providerError))
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "provider_denied"})
			return
		}

		code := contextGin.Query("code")
		state := contextGin.Query("state")
		if code == "" || state == "" {
			activeMetrics().Increment(metricCallbackInvalidState)
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing_callback_params"})
			return
		}

		templateID, redeemErr := states.Redeem(contextGin, state)
		if redeemErr != nil {
			activeMetrics().Increment(metricCallbackInvalidState)
			activeLogger().Warn("state redemption failed", zap.Error(redeemErr))
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_state"})
			return
		}

		exchanger := activeCodeExchanger()
		if exchanger == nil {
			activeLogger().Error("no code exchanger provided")
			contextGin.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		accessToken, exchangeErr := exchanger.Exchange(contextGin, code)
		if exchangeErr != nil {
			activeMetrics().Increment(metricCallbackExchangeFailure)
			activeLogger().Error("authorization code exchange failed", zap.Error(exchangeErr))
			contextGin.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		claims, profileErr := exchanger.FetchProfile(contextGin, accessToken)
		if profileErr != nil {
			activeMetrics().Increment(metricCallbackExchangeFailure)
			activeLogger().Error("userinfo fetch failed", zap.Error(profileErr))
			contextGin.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		sessionID, createErr := sessions.Create(contextGin, NewProfile(templateID, claims))
		if createErr != nil {
			activeLogger().Error("storing session failed", zap.Error(createErr))
			contextGin.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		redirectURL, redirectErr := frontendRedirectURL(configuration.FrontendBaseURL, templateID, sessionID)
		if redirectErr != nil {
			activeLogger().Error("building frontend redirect failed", zap.Error(redirectErr))
			contextGin.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		activeMetrics().Increment(metricCallbackSuccess)
		contextGin.Redirect(http.StatusFound, redirectURL)
	})

	router.GET("/api/user-data/:sessionId", func(contextGin *gin.Context) {
		sessionID := contextGin.Param("sessionId")
		profile, getErr := sessions.Get(contextGin, sessionID)
		if getErr != nil {
			activeMetrics().Increment(metricSessionLookupMiss)
			if errors.Is(getErr, ErrSessionNotFound) {
				contextGin.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
				return
			}
			activeLogger().Error("session lookup failed", zap.Error(getErr))
			contextGin.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		activeMetrics().Increment(metricSessionLookupHit)
		contextGin.JSON(http.StatusOK, profile)
	})
}

func frontendRedirectURL(frontendBaseURL string, templateID string, sessionID string) (string, error) {
	parsed, err := url.Parse(frontendBaseURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("templateId", templateID)
	query.Set("sessionId", sessionID)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func requestBaseURL(request *http.Request, configuration ServerConfig) string {
	if base := strings.TrimRight(configuration.PublicBaseURL, "/"); base != "" {
		return base
	}
	scheme := "http"
	if isHTTPS(request) {
		scheme = "https"
	}
	return scheme + "://" + request.Host
}

func isHTTPS(request *http.Request) bool {
	if request.TLS != nil {
		return true
	}
	scheme := request.Header.Get("X-Forwarded-Proto")
	if strings.EqualFold(scheme, "https") {
		return true
	}
	forwarded := request.Header.Get("Forwarded")
	return forwarded != "" && strings.Contains(strings.ToLower(forwarded), "proto=https")
}
