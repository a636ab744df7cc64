package services

import (
	"time"

	"github.com/pairline/pairline/pkg/internal/database"
	"github.com/pairline/pairline/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// DoAutoDatabaseCleanup hard-deletes soft-deleted messages and drops call
// records that have been sitting in Ended long enough that no one will
// observe them again. Ended records are logically Idle anyway; the row only
// exists to be overwritten by the next call.
func DoAutoDatabaseCleanup() {
	deadline := time.Now().Add(-60 * time.Minute)
	log.Debug().Time("deadline", deadline).Msg("Now cleaning up entire database...")

	var count int64
	tx := database.C.Unscoped().
		Delete(&models.Message{}, "deleted_at IS NOT NULL AND deleted_at <= ?", deadline)
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("An error occurred when running database cleanup...")
	}
	count += tx.RowsAffected

	tx = database.C.
		Delete(&models.CallRecord{}, "status = ? AND updated_at <= ?", models.CallStatusEnded, time.Now().Add(-24*time.Hour))
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("An error occurred when running database cleanup...")
	}
	count += tx.RowsAffected

	log.Debug().Int64("affected", count).Msg("Clean up entire database accomplished.")
}
