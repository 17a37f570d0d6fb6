package serve

// ServableAd is the projection of an ad that leaves the system: just enough
// to render the creative. The click URL routes through the tracking redirect
// so clicks count without any script on the host page.
type ServableAd struct {
	AdID         int64  `json:"ad_id"`
	BusinessName string `json:"business_name"`
	ImageURL     string `json:"image_url"`
	ClickURL     string `json:"click_url"`
}

// DisplayPayload is the JSONP body: callback(<DisplayPayload>).
type DisplayPayload struct {
	Ads []ServableAd `json:"ads"`
}
