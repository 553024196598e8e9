// Package reference holds the static lookup tables served with the metadata.
package reference

// CoreFacets are the document fields search results can be aggregated on.
var CoreFacets = []string{
	"collection_id",
	"countries",
	"languages",
	"emails",
	"phone_numbers",
	"names",
	"addresses",
	"mime_type",
	"author",
	"extension",
}

// SourceCategories are the categories a data source can be filed under.
var SourceCategories = []string{
	"news",
	"leak",
	"land",
	"gazette",
	"court",
	"company",
	"watchlist",
	"investigation",
	"sanctions",
	"scrape",
	"procurement",
	"grey",
	"license",
	"regulatory",
	"poi",
	"customs",
	"other",
}
