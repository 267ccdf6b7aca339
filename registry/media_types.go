package registry

// Media types for addon archives in OCI registries.
const (
	// ArtifactType identifies addon archives as an OCI 1.1 artifact type.
	ArtifactType = "application/vnd.meigma.gma.v1"

	// MediaTypeArchive is the media type for a raw archive layer.
	MediaTypeArchive = "application/vnd.meigma.gma.archive.v1"

	// MediaTypeArchiveZstd is the media type for a zstd-compressed archive
	// layer. Compression applies to the layer as stored in the registry;
	// the archive bytes themselves are unchanged.
	MediaTypeArchiveZstd = "application/vnd.meigma.gma.archive.v1+zstd"
)

// Manifest annotation keys carrying addon metadata, so registries and
// tooling can display it without fetching the archive layer.
const (
	AnnotationTitle        = "com.meigma.gma.title"
	AnnotationAuthor       = "com.meigma.gma.author"
	AnnotationAddonVersion = "com.meigma.gma.addon-version"
	AnnotationOwnerID      = "com.meigma.gma.owner-id"
)
