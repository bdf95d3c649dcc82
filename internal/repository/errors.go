// Package repository holds the MySQL-backed stores. Sentinel errors below
// are shared with the in-memory stores so that services can classify
// failures without knowing which backend produced them.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailExists and ErrUsernameExists report unique-key violations on
	// the users table.
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")

	// ErrSlotUnavailable is returned when a tee time has already been
	// booked, including when a concurrent booking won the row lock first.
	ErrSlotUnavailable = errors.New("tee time not available")
)

const mysqlDuplicateEntry = 1062

// duplicateKey returns the index name of a duplicate-entry error, or ""
// when err is not one.
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return "", false
	}
	// Message: Duplicate entry 'x' for key 'users.uq_users_email'
	msg := me.Message
	if i := strings.LastIndex(msg, "for key "); i >= 0 {
		return strings.Trim(msg[i+len("for key "):], "'`\""), true
	}
	return "", true
}
