// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - LoadLexicon / LexiconWatcher: TOML stopword and compound dictionary,
//     reloaded into the tokenizer when the file changes
package file
