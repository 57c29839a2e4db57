package commands

// WriteLineDiff exposes writeLineDiff to the tests.
var WriteLineDiff = writeLineDiff
