// Package posts indexes a tree of Markdown and MDX files as blog posts.
//
// The directory layout is the identity scheme: a file at
// 2024/03/15/my-post.mdx under the content root becomes the post with slug
// 2024-03-15-my-post. Index walks the tree on every call and holds no state
// between calls; Cache is the explicitly owned wrapper for callers that want
// to reuse a catalog across requests.
package posts
