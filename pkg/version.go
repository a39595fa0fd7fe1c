package lheutils

// Version is what every tool reports for its -version flag.
const Version = "1.0.0"
