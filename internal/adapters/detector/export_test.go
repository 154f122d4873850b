package detector

// Detect exports detect for testing without touching the process environment.
var Detect = detect
