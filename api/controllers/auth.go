package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/api/validators"
	"github.com/angelmondragon/men4u-admin/internal/auth"
	"github.com/angelmondragon/men4u-admin/internal/session"
	"github.com/angelmondragon/men4u-admin/pkg/config"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

// AuthRequestOTP asks the backend to text a one-time password to the operator.
func AuthRequestOTP(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "auth")
			return
		}
		var req auth.OTPRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ack, err := svc.RequestOTP(r.Context(), req)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "login", "/common/login"), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ack)
	}
}

// AuthLogin verifies the OTP, opens a console session and sets the session cookie.
func AuthLogin(svc auth.Service, cfg config.ConsoleConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "auth")
			return
		}
		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp, issued, err := svc.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "login", "/common/verify_otp"), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithSessionID(r.Context(), issued.Session.ID())
			logg.Info(logg.WithUserID(ctx, resp.Profile.UserID.String()), "auth.login")
		}
		setSessionCookie(w, cfg, issued.Token, issued.ExpiresAt)
		responses.WriteSuccess(w, resp)
	}
}

// AuthLogout clears the credential and the profile together.
func AuthLogout(svc auth.Service, cfg config.ConsoleConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "auth")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		if err := svc.Logout(r.Context(), sess); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clearSessionCookie(w, cfg)
		responses.WriteSuccess(w, map[string]string{"status": "signed_out"})
	}
}

// AuthMe returns the signed-in profile.
func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "auth")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		profile, err := svc.Me(sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// AuthUpdateMe shallow-merges the submitted fields into the stored profile.
func AuthUpdateMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "auth")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		var patch session.ProfilePatch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.UpdateMe(r.Context(), sess, patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, withDraft(err, patch))
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func setSessionCookie(w http.ResponseWriter, cfg config.ConsoleConfig, token string, expiresAt time.Time) {
	if cfg.CookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg config.ConsoleConfig) {
	if cfg.CookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
