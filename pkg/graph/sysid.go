package graph

// Entity ids of the protocol-level schema published in the target space.
// These are stable published identifiers, not values this module mints.
const (
	NameProperty        = "LuBWqZAu6pz54eiJS5mLv8"
	DescriptionProperty = "LA1DqP5v6QAdsgLPXGF3YA"
	TypesProperty       = "Jfmby78N4BCseZinBmdVov"
	CoverProperty       = "7YHk6qYkNDaAtNb8GwmysF"
	AvatarProperty      = "399xP4sGWSoepxeEnp3UdR"
	SourcesProperty     = "A7NJF2WPh8VhmvbfVWiyLo"
	WebURLProperty      = "93stf6cgYvBsdPruRzq1KK"
	MediaURLProperty    = "BTNv9aAFqAzDjQuf4u2fXK"
	DatabaseIDProperty  = "2XaDUAbys7eBAMR168vw9L"
	StartTimeProperty   = "6cF7TMDBFwSt5vMENU3Cta"
	EndTimeProperty     = "R7X9rnVW49g29XvK5KMTtP"
	WorksAtProperty     = "U1uCAzXsRSTP4vFwo1JwJG"
	WorkedAtProperty    = "8fvqALeBDwEExJsDeTcvnV"
	PersonType          = "GfN9BK2oicLiBHrUavteS8"
	RoleProperty        = "VGKSRGzxCRvQxpJP7CB4wj"

	// Block vocabulary.
	BlocksProperty          = "QYbjCM6NT9xmh2hFGsqpQX"
	RelationIndexProperty   = "WNopXUYxsSsE51gkJGWghe"
	MarkdownContentProperty = "V9A2298ZHL135zFRH4qcRg"
	TextBlockType           = "Fc836HBAyTaLaZgBzcTS2a"
	DataBlockType           = "PnQsGwnnztrLNRCm9mcKKY"
	FilterProperty          = "3YqoLJ7uAPmthXyXmXKoSa"
	ViewProperty            = "46GzPiTRPG36jX9dmNE9ic"
	TableView               = "S9T1TPras3iPkVvrS5CoKE"
	GalleryView             = "SHBs5faKV8gDeZgsUoVUQF"
	ShownColumnsProperty    = "9AecPe8JTN7uJRaX1Mk1XV"
)
