package httpserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"photovault/internal/errs"
	"photovault/internal/model"
)

// Wire names follow the original client contract.
type signupRequest struct {
	Username           string `json:"username"`
	Email              string `json:"email"`
	EncMasterKey       string `json:"enc_masterkey"`
	EncVerificationKey string `json:"enc_verificationkey"`
	VerificationSecret string `json:"plain_verificationkey"`
}

type signinRequest struct {
	Username string `json:"username"`
}

type signinResponse struct {
	EncMasterKey       string `json:"enc_masterkey"`
	EncVerificationKey string `json:"enc_verificationkey"`
}

type verifyRequest struct {
	Username        string `json:"username"`
	VerificationKey string `json:"verificationKey"`
}

type verifyResponse struct {
	Verified bool   `json:"verified"`
	Token    string `json:"token,omitempty"`
	Message  string `json:"message,omitempty"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "malformed request body"})
		return
	}
	err := s.auth.Signup(r.Context(), req.Username, req.Email,
		model.EncryptedBlob(req.EncMasterKey), model.EncryptedBlob(req.EncVerificationKey),
		[]byte(req.VerificationSecret))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Account created successfully"})
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "malformed request body"})
		return
	}
	mk, vk, err := s.auth.Signin(r.Context(), req.Username)
	if err != nil {
		// signin reports unknown accounts as 400 per the original contract
		if errors.Is(err, errs.ErrNotFound) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "user not found"})
			return
		}
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, signinResponse{
		EncMasterKey:       string(mk),
		EncVerificationKey: string(vk),
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "malformed request body"})
		return
	}
	sess, err := s.auth.VerifyWithIP(r.Context(), req.Username, []byte(req.VerificationKey), remoteIP(r))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrAuthFailed):
			writeJSON(w, http.StatusUnauthorized, verifyResponse{Verified: false, Message: "invalid verification key"})
		case errors.Is(err, errs.ErrRateLimited):
			writeJSON(w, http.StatusTooManyRequests, verifyResponse{Verified: false, Message: "too many attempts"})
		default:
			writeError(w, s.log, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Verified: true, Token: sess.Token})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
