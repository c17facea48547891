// Package models defines the data types shared by the dashboard client and the dashboard API.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): the JSON shapes exchanged over the REST API
//   - [User] : the signed-in Discord user's profile
//   - [Guild] : a server the bot is installed in
//   - [UserGuild] : a server the signed-in user belongs to
//   - [BotStatus] : bot presence summary
//
// 2. Persistent Entities: rows owned by the dashboard API
//   - [UserRecord] : users who have signed in, with login counts
//   - [SessionRecord] : issued session cookies, used to honor logout
//
// Persistent entities implement the [Model] interface; [UserStore] and [SessionStore]
// describe the storage operations the API depends on.
package models
