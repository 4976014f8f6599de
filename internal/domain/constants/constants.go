// Package constants contains values shared across configuration and infrastructure.
package constants

const (
	EnvDevelop    = "develop"
	EnvStaging    = "staging"
	EnvProduction = "production"
)

const (
	// GeolocationProviderHTTP resolves positions through an IP geolocation endpoint.
	GeolocationProviderHTTP = "http"
	// GeolocationProviderStatic always answers with the configured default center.
	GeolocationProviderStatic = "static"
)

const (
	StorageDriverSQLite = "sqlite"
	StorageDriverRedis  = "redis"
)

// Preference keys persisted per owner.
const (
	PreferenceCart            = "cart"
	PreferenceSelectedAddress = "selected_address"
	PreferenceFavorites       = "favorites"
	PreferenceAppliedCoupon   = "applied_coupon"
)

const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)
