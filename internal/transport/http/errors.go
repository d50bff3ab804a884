package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidID           = "invalid_id"
	codeUnauthorized        = "unauthorized"
	codeForbidden           = "forbidden"
	codeGigNotFound         = "gig_not_found"
	codeOrderNotFound       = "order_not_found"
	codeConfirmationRef     = "order_reference_required"
	codeInvalidConfirmToken = "invalid_confirmation_token"
	codeRepositoryExists    = "repository_already_exists"
	codeCredentialsMissing  = "hosting_credentials_missing"
	codeProvisioningFailed  = "provisioning_failed"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
