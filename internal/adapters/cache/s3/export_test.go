package s3

// PartSize exports partSize for testing.
var PartSize = partSize
