package storage

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"craftmarket/models"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

var db *sql.DB

func InitDB() *sql.DB {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		user, password, dbname, host, port)

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Pool sizing for light server load
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	return db
}

func GetDB() *sql.DB {
	return db
}

// GetSessionByToken resolves an unexpired session row for the auth middleware.
func GetSessionByToken(db *sql.DB, sessionToken string) (*models.Session, error) {
	var session models.Session
	query := `SELECT user_id, session_id, email, expires_at, timestp
              FROM session WHERE session_id = $1 AND expires_at > NOW()`
	err := db.QueryRow(query, sessionToken).Scan(
		&session.UserID, &session.SessionID, &session.Email, &session.ExpiresAt, &session.Timestamp)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CleanupExpiredSessions removes sessions whose expiry has passed.
func CleanupExpiredSessions(db *sql.DB) error {
	result, err := db.Exec(`DELETE FROM session WHERE expires_at <= NOW()`)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %v", err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		log.Printf("Cleaned up %d expired sessions", n)
	}
	return nil
}
