package constants

const (
	AppStorefrontService = "storefront-service"
	AppMainStorefront    = "main storefront"
	AudienceAdmin        = "audience-admin"
)
