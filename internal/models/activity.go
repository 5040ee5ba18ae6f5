package models

import "time"

// Activity is a department event that may carry one blog article.
type Activity struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ActivityRef is the minimal activity projection attached to blog payloads.
type ActivityRef struct {
	ID    int64  `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
}

// BlogRef is the minimal blog projection nested under activity listings so
// callers can derive published state.
type BlogRef struct {
	ID          int64 `db:"id" json:"id"`
	IsPublished bool  `db:"is_published" json:"is_published"`
}

// ActivityWithBlogs is the admin list projection.
type ActivityWithBlogs struct {
	Activity
	Blogs []BlogRef `json:"blogs"`
}

// ActivityBlog is the HTML article attached to an activity.
type ActivityBlog struct {
	ID          int64     `db:"id" json:"id"`
	ActivityID  int64     `db:"activity_id" json:"activity_id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	IsPublished bool      `db:"is_published" json:"is_published"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ActivityBlogWithActivity joins a blog with its owning activity reference.
type ActivityBlogWithActivity struct {
	ActivityBlog
	Activity ActivityRef `json:"activity"`
}

// ActivityBlogAdmin is the admin list projection including attached images.
type ActivityBlogAdmin struct {
	ActivityBlog
	Activity ActivityRef     `json:"activity"`
	Images   []ActivityImage `json:"images"`
}

// ActivityImage records metadata of an uploaded blog image.
type ActivityImage struct {
	ID             int64  `db:"id" json:"id"`
	ActivityBlogID int64  `db:"activity_blog_id" json:"activity_blog_id"`
	Filename       string `db:"filename" json:"filename"`
	OriginalName   string `db:"original_name" json:"original_name"`
	Mimetype       string `db:"mimetype" json:"mimetype"`
	Size           int64  `db:"size" json:"size"`
	URL            string `db:"url" json:"url"`
}

// CarouselImage is one entry of the homepage carousel payload.
type CarouselImage struct {
	ID           string           `json:"id"`
	URL          string           `json:"url"`
	ActivityBlog CarouselBlogInfo `json:"activity_blog"`
}

// CarouselBlogInfo labels a carousel image with blog and activity titles.
type CarouselBlogInfo struct {
	Title    string           `json:"title"`
	Activity CarouselActivity `json:"activity"`
}

// CarouselActivity carries the activity title for a carousel entry.
type CarouselActivity struct {
	Title string `json:"title"`
}
