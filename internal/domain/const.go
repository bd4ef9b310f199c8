package domain

import "time"

const (
	// Key space
	KEY_PREFIX_OWNER           = "registry:owner:"
	KEY_PREFIX_URL_LOOKUP      = "registry:lookup:url:"
	KEY_INDEX_ALL              = "registry:index:all"
	KEY_PREFIX_STATUS_INDEX    = "registry:index:status:"
	KEY_PREFIX_CATEGORY_INDEX  = "registry:index:category:"
	ENTRY_ID_LENGTH            = 16
	COMPOSITE_KEY_SEPARATOR    = ":"
	DEFAULT_LIST_LIMIT         = 20
	MAX_LIST_LIMIT             = 100
	MAX_TAGS                   = 20
	MAX_NAME_LENGTH            = 200
	MAX_DESCRIPTION_LENGTH     = 2000
	DEFAULT_CHALLENGE_TTL      = 5 * time.Minute
	DEFAULT_TIMESTAMP_MAX_AGE  = 5 * time.Minute
	DEFAULT_TIMESTAMP_MAX_SKEW = 30 * time.Second
)
