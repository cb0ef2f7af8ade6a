// Package commands defines the quizctl CLI for managing the question document.
//
// Commands
//
//   - categories        List categories with question counts
//   - create-category   Add an empty category, optionally with a first batch
//   - append            Append a batch of questions from a JSON file
//   - delete-question   Delete one question by position
//   - upload            Copy the local file to the JSONBin bin
//   - download          Copy the JSONBin bin to the local file
//   - play              Run a quiz in the terminal
//
// # Configuration
//
// Every persistent flag can also be set through a QUIZ_-prefixed environment
// variable (--bin-id becomes QUIZ_BIN_ID) or a quizctl.yaml file in the
// working directory. Flags win over the environment, which wins over the file.
package commands
