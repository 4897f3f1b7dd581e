package service

import "github.com/m04kA/septic-booking-service/pkg/txmanager"

// DBExecutor *sql.DB или *sql.Tx
type DBExecutor = txmanager.DBExecutor
