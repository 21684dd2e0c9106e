package database

// Collection names as constants to prevent typos
const (
	UsersCollection      = "users"
	FilesCollection      = "files"
	FoldersCollection    = "folders"
	SharesCollection     = "shares"
	ShareLinksCollection = "share_links"
	ActivitiesCollection = "activities"
)
