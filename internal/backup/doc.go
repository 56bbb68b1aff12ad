// Package backup archives directories before fcmm replaces them and moves
// file trees between the scratch area and a working directory.
//
// Archives are gzip-compressed tar files written through an afero.Fs.
package backup
