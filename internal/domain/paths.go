package domain

import (
	"path"
	"strings"
)

const (
	AccountsCollection           = "accounts"
	BackupsCollectionName        = "backups"
	RecurrenceProfilesCollection = "recurrence_profiles"
	RentalsCollection            = "rentals"
	OperationsCollection         = "operations"
	TrucksCollection             = "trucks"
	VehicleTypesCollection       = "vehicle_types"
)

// BackupSubcollections are the mutable per-account collections captured by
// a backup, in copy order.
var BackupSubcollections = []string{
	"clients",
	"dumpsters",
	RentalsCollection,
	"completed_rentals",
	TrucksCollection,
	OperationsCollection,
	"completed_operations",
}

// AccountCollection is accounts/{accountID}/{name}.
func AccountCollection(accountID, name string) string {
	return path.Join(AccountsCollection, accountID, name)
}

// BackupsCollection holds the backup containers of an account.
func BackupsCollection(accountID string) string {
	return AccountCollection(accountID, BackupsCollectionName)
}

// BackupAccountCollection holds the account wrapper copy inside a backup.
func BackupAccountCollection(accountID, backupID string) string {
	return path.Join(BackupsCollection(accountID), backupID, AccountsCollection)
}

// BackupDataCollection holds the copied documents of one subcollection.
func BackupDataCollection(accountID, backupID, name string) string {
	return path.Join(BackupAccountCollection(accountID, backupID), accountID, name)
}

// CollectionGroup is the last segment of a collection path.
func CollectionGroup(collection string) string {
	if i := strings.LastIndexByte(collection, '/'); i >= 0 {
		return collection[i+1:]
	}
	return collection
}

// ParentDocumentID returns the id of the document owning a subcollection
// ("accounts/a1/rentals" -> "a1").
func ParentDocumentID(collection string) string {
	parts := strings.Split(collection, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-2]
}
