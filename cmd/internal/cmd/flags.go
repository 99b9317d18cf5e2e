package cmd

const (
	// PomFlag names the Maven project file to read codeartifact.* properties from.
	PomFlag = "pom"
	// PomDefault is used when PomFlag is not set. A missing default file is not an error.
	PomDefault = "pom.xml"

	DomainFlag      = "domain"
	DomainOwnerFlag = "domain-owner"
	RepositoryFlag  = "repository"
	// ProfileFlag names the shared AWS configuration profile to load credentials from.
	ProfileFlag = "profile"
	// RegionFlag overrides the region of the profile.
	RegionFlag = "region"
	// DurationSecondsFlag is the token lifetime. It is a string flag so that invalid input
	// is reported as a configuration error instead of a flag parse error.
	DurationSecondsFlag = "duration-seconds"
	PruneFlag           = "prune"

	// TempFolderFlag overrides the tempFolder of the filesystem configuration.
	TempFolderFlag = "temp-folder"
	// WorkingDirectoryFlag overrides the workingDirectory of the filesystem configuration.
	// Relative project file paths are resolved against it.
	WorkingDirectoryFlag = "working-directory"

	// OutputFlag selects the output format of commands printing results.
	OutputFlag          = "output"
	OutputFlagShorthand = "o"
)
