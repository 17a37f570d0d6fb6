package ads

type CreateAdRequest struct {
	BusinessName string `json:"business_name" binding:"required"`
	ImageURL     string `json:"image_url" binding:"required,url"`
	TargetURL    string `json:"target_url" binding:"required,url"`
}

type CreateWebsiteRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required,url"`
}

type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	UserCount int    `json:"user_count" binding:"min=0"`
}

type PlaceAdRequest struct {
	WebsiteID   int64   `json:"website_id" binding:"required"`
	CategoryIDs []int64 `json:"category_ids" binding:"required,min=1"`
}
