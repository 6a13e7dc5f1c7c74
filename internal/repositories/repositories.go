// package repositories provides the persistence layer for locally recorded
// data.
//
// The only entity persisted here is play history; the credential record has
// its own store in the auth package.
package repositories
