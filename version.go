package espalier

// Version is the library version; release builds override it with -ldflags.
var Version = "0.1.0"
