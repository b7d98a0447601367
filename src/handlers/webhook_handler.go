package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	syncer "github.com/Chixide1/ZenWealth-sub001/src/sync"
	"github.com/Chixide1/ZenWealth-sub001/src/util"
	"github.com/plaid/plaid-go/v41/plaid"
)

// ProviderWebhook handles Plaid webhooks. Transaction webhooks trigger an
// immediate sync for the referenced item, bypassing the freshness gate.
func ProviderWebhook(client *plaid.APIClient, orchestrator *syncer.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		ok, err := util.VerifyWebhook(r.Context(), client, body, r.Header.Get("Plaid-Verification"))
		if err != nil || !ok {
			log.Printf("ERROR: Webhook verification failed: %v", err)
			http.Error(w, "verification failed", http.StatusUnauthorized)
			return
		}

		var payload struct {
			WebhookType string `json:"webhook_type"`
			WebhookCode string `json:"webhook_code"`
			ItemID      string `json:"item_id"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		if payload.WebhookType != "TRANSACTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		applied, err := orchestrator.SyncConnectionByItemID(r.Context(), payload.ItemID)
		if err != nil {
			// Webhooks are redelivered; answer 200 so Plaid does not retry a
			// failure we already recorded.
			log.Printf("ERROR: Webhook-triggered sync failed for item %s: %v", payload.ItemID, err)
			w.WriteHeader(http.StatusOK)
			return
		}

		log.Printf("INFO: Webhook %s/%s applied %d changes for item %s",
			payload.WebhookType, payload.WebhookCode, applied, payload.ItemID)
		w.WriteHeader(http.StatusOK)
	}
}
