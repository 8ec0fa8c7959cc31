package recipes

import "forkful/models"

// recipePost is the write payload. IsPublished is a pointer so "absent" and
// "false" can be told apart: the field must be exactly a boolean.
type recipePost struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Directions  string   `json:"directions"`
	PublishDate int64    `json:"publishDate"`
	IsPublished *bool    `json:"isPublished"`
	Ingredients []string `json:"ingredients"`
	ImageURL    string   `json:"imageUrl"`
}

// validateRecipePost returns the missing/invalid fields comma-joined with a
// trailing comma, or "" when the payload is complete. Clients display the
// string verbatim, so the format is contractual.
func validateRecipePost(post *recipePost) string {
	missingFields := ""
	if post == nil {
		return "recipe"
	}
	if post.Name == "" {
		missingFields += "name,"
	}
	if post.Category == "" {
		missingFields += "category,"
	}
	if post.Directions == "" {
		missingFields += "directions,"
	}
	if post.PublishDate == 0 {
		missingFields += "publishDate,"
	}
	if post.ImageURL == "" {
		missingFields += "imageUrl,"
	}
	if post.IsPublished == nil {
		missingFields += "isPublished,"
	}
	if len(post.Ingredients) == 0 {
		missingFields += "ingredients,"
	}
	return missingFields
}

// sanitizeRecipePost copies exactly the declared fields into a fresh
// record, dropping anything extra a client may have sent.
func sanitizeRecipePost(post *recipePost) *models.Recipe {
	return &models.Recipe{
		Name:        post.Name,
		Category:    post.Category,
		Directions:  post.Directions,
		PublishDate: post.PublishDate,
		IsPublished: *post.IsPublished,
		Ingredients: post.Ingredients,
		ImageURL:    post.ImageURL,
	}
}
