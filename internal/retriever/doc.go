// Package retriever downloads evaluation material into local folders.
//
// Gold retrieval lists a directory of a GitHub repository through the JSON
// view GitHub serves to browsers and fetches every file from the raw content
// host. Prediction retrieval posts a pipeline description to a storage API
// and writes each returned MMIF as <guid>.mmif. Target folders must be empty
// or absent and are locked for the duration of a download.
package retriever
