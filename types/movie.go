package types

import "time"

// Movie is a catalog entry cached from the upstream provider.
//
// The JSON field names mirror the shape the web client consumes, which in
// turn mirrors the provider's search results after transformation.
type Movie struct {
	// ID is the internal row identifier of the cached entry.
	ID int `json:"-" db:"id"`

	// ExternalID is the provider-native identifier of the movie (the
	// track id of the search result). Unique across the catalog; it is
	// the value stored in User.Favorites.
	ExternalID string `json:"movieId" db:"external_id"`

	// Title is the display title of the movie.
	Title string `json:"title" db:"title"`

	// Description is the short synopsis.
	Description string `json:"description" db:"description"`

	// LongDescription is the full synopsis as delivered by the provider.
	LongDescription string `json:"longDescription" db:"long_description"`

	// ReleaseDate is the provider's release timestamp.
	ReleaseDate time.Time `json:"releaseDate" db:"release_date"`

	// Director is the credited director (the provider's artist field).
	Director string `json:"director" db:"director"`

	// Cast lists the credited cast. The provider has no dedicated cast
	// field, so this carries the long description text, matching what
	// the client renders.
	Cast string `json:"cast" db:"cast_members"`

	// Image is the artwork URL.
	Image string `json:"image" db:"image"`

	// VideoURL is the preview clip URL.
	VideoURL string `json:"videoUrl" db:"video_url"`

	// Genre is the primary genre name.
	Genre string `json:"genre" db:"genre"`

	// Price is the SD purchase price.
	Price float64 `json:"price" db:"price"`

	// HDPrice is the HD purchase price.
	HDPrice float64 `json:"hdPrice" db:"hd_price"`

	// CreatedAt is when the entry was first cached.
	CreatedAt time.Time `json:"-" db:"created_at"`

	// UpdatedAt is when the entry was last refreshed from the provider.
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}
