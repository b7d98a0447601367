package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/Chixide1/ZenWealth-sub001/src/provider"
	"github.com/Chixide1/ZenWealth-sub001/src/store"
	syncer "github.com/Chixide1/ZenWealth-sub001/src/sync"
	"github.com/go-chi/chi/v5"
)

func CreateLinkToken(p provider.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		linkToken, err := p.CreateLinkToken(r.Context(), userID)
		if err != nil {
			http.Error(w, "Failed to create link token", http.StatusInternalServerError)
			log.Printf("ERROR: Link token creation failed for user %d: %v", userID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"link_token": linkToken,
		})
	}
}

func ExchangePublicToken(p provider.Provider, s store.LedgerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			PublicToken string `json:"public_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode exchange public token request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		item, err := p.ExchangeToken(r.Context(), req.PublicToken)
		if err != nil {
			http.Error(w, "Failed to exchange public token", http.StatusInternalServerError)
			log.Printf("ERROR: Public token exchange failed for user %d: %v", userID, err)
			return
		}

		conn := &models.Connection{
			UserID:          userID,
			AccessToken:     item.AccessToken,
			ItemID:          item.ItemID,
			InstitutionID:   item.InstitutionID,
			InstitutionName: item.InstitutionName,
		}
		if err := s.SaveConnection(r.Context(), conn); err != nil {
			http.Error(w, "Failed to save connection", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to save connection for user %d: %v", userID, err)
			return
		}

		log.Printf("INFO: Successfully linked item %s for user %d", item.ItemID, userID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(conn)
	}
}

func GetConnections(s store.LedgerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		conns, err := s.ConnectionsForUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "Failed to retrieve connections", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get connections for user %d: %v", userID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(conns)
	}
}

func UnlinkConnection(p provider.Provider, s store.LedgerStore, invalidator syncer.Invalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		connectionID, err := strconv.ParseInt(chi.URLParam(r, "connection_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid connection id", http.StatusBadRequest)
			return
		}

		conns, err := s.ConnectionsForUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "Failed to retrieve connections", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get connections for user %d: %v", userID, err)
			return
		}
		var conn *models.Connection
		for i := range conns {
			if conns[i].ID == connectionID {
				conn = &conns[i]
				break
			}
		}
		if conn == nil {
			http.Error(w, "connection not found", http.StatusNotFound)
			return
		}

		// Revoke upstream first; the local delete cascades to accounts and
		// transactions.
		if err := p.RemoveItem(r.Context(), conn.AccessToken); err != nil {
			log.Printf("ERROR: Failed to remove item %s upstream: %v", conn.ItemID, err)
		}
		if err := s.DeleteConnection(r.Context(), userID, connectionID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "connection not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to delete connection", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to delete connection %d for user %d: %v", connectionID, userID, err)
			return
		}

		// Cached pages still hold the deleted connection's transactions.
		if invalidator != nil {
			invalidator.InvalidateUser(userID)
		}

		log.Printf("INFO: Unlinked connection %d (item %s) for user %d", connectionID, conn.ItemID, userID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetAccounts(s store.LedgerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		connectionID, err := strconv.ParseInt(chi.URLParam(r, "connection_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid connection id", http.StatusBadRequest)
			return
		}

		accounts, err := s.AccountsForConnection(r.Context(), userID, connectionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "connection not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to retrieve accounts", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get accounts for user %d, connection %d: %v", userID, connectionID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(accounts)
	}
}
