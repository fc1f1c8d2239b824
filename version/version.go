package version

// Version is the current release of herald.
const Version = "0.3.0"
