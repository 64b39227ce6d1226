// Package http exposes the post catalog as a read only JSON API on gin.
//
// Routes:
//   - Health: /healthz
//   - Catalog: /posts?tag=&date=&offset=&limit=
//   - Single post, rendered: /posts/{slug}
//   - Aggregations: /tags, /archive, /years, /years/{year}
//
// Host applications can mount the engine directly or wrap it in their own server.
package http
