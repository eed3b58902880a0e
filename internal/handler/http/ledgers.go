package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/internal/utils"
	"github.com/finkeeper/go-ledger-sync/models"
)

func (h *Handler) createLedger(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.CreateLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.createLedger").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	ledger, err := h.services.RemoteLedgerService.CreateLedger(r.Context(), req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createLedger").Msg("error creating ledger")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, ledger, http.StatusCreated)
}

func (h *Handler) getLedger(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ledgerID := chi.URLParam(r, "ledgerID")

	ledger, err := h.services.RemoteLedgerService.GetLedger(r.Context(), ledgerID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getLedger").Msg("error getting ledger")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, ledger, http.StatusOK)
}

func (h *Handler) getCanonical(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ledgerID := chi.URLParam(r, "ledgerID")

	blob, err := h.services.RemoteLedgerService.GetCanonical(r.Context(), ledgerID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getCanonical").Msg("error getting canonical state")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, blob, http.StatusOK)
}

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ledgerID := chi.URLParam(r, "ledgerID")

	clientID, ok := utils.GetClientIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.push").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	// The URL and the token are authoritative over whatever the body says.
	req.LedgerID = ledgerID
	req.ClientID = clientID

	resp, err := h.services.RemoteLedgerService.Push(r.Context(), req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.push").Msg("error pushing canonical state")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) acquireLease(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ledgerID := chi.URLParam(r, "ledgerID")

	clientID, ok := utils.GetClientIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.AcquireLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.acquireLease").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	grant, err := h.services.RemoteLedgerService.AcquireLease(r.Context(), ledgerID, clientID, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		log.Err(err).Str("func", "*Handler.acquireLease").Msg("error acquiring lease")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, grant, http.StatusOK)
}

func (h *Handler) releaseLease(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ledgerID := chi.URLParam(r, "ledgerID")

	clientID, ok := utils.GetClientIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.services.RemoteLedgerService.ReleaseLease(r.Context(), ledgerID, clientID); err != nil {
		log.Err(err).Str("func", "*Handler.releaseLease").Msg("error releasing lease")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
