// Package media moves one attachment from a local file to object storage.
//
// An upload is three strictly ordered steps. Init asks the API for a
// TransferPlan, Transfer PUTs the bytes to the presigned destinations (one
// URL, or one URL per 8 MiB part sent sequentially in ascending order) and
// Confirm reports the collected part ETags back to the API. A failure at any
// step aborts the attempt with an *UploadError naming the step; nothing is
// resumed or retried within the engine.
package media
