package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./pagekeeper.db"

	// DefaultCoversDir is the default directory for downloaded cover images
	DefaultCoversDir = "./covers"
)

// ReviewerThreshold is the number of written reviews required before a user
// may be promoted to the reviewer role.
const ReviewerThreshold = 2
