package mmcif

// Export some internal functions for testing

var SplitCifLine = splitCifLine
var SplitTag = splitTag
